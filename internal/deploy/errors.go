package deploy

import "errors"

var (
	// ErrMissingToken means no Vercel token is configured.
	ErrMissingToken = errors.New("deploy: vercel token is required")
	// ErrTimeout means the deployment outlived its deadline.
	ErrTimeout = errors.New("deploy: timed out")
	// ErrNoURL means the deploy output carried no deployment URL.
	ErrNoURL = errors.New("deploy: no deployment URL in output")
)
