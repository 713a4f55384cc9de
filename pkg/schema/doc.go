// Package schema holds the tagged-variant JSON value used to walk schema
// documents. Objects keep member declaration order so consumers can emit
// fields in the order authors wrote them.
package schema
