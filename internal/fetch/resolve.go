package fetch

import (
	"fmt"
	"time"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
)

type Env struct {
	LookPath exec.LookPath
	Runner   exec.CmdRunner
	Timeout  time.Duration
}

// NewFetcher picks the fetcher once at startup. The 'command' method prefers
// curl and falls back to wget.
func NewFetcher(method config.FetcherMethod, env Env) (Fetcher, error) {
	switch method {
	case config.FetcherMethodAuto, config.FetcherMethodHTTP, "":
		return NewHTTPFetcher(nil, env.Timeout), nil
	case config.FetcherMethodCurl:
		if !exec.Available(env.LookPath, "curl") {
			return nil, fmt.Errorf("%w: curl is not on PATH", ErrNoFetcherAvailable)
		}
		return NewCurlFetcher(env.Runner, env.Timeout), nil
	case config.FetcherMethodWget:
		if !exec.Available(env.LookPath, "wget") {
			return nil, fmt.Errorf("%w: wget is not on PATH", ErrNoFetcherAvailable)
		}
		return NewWgetFetcher(env.Runner, env.Timeout), nil
	case config.FetcherMethodCommand:
		if exec.Available(env.LookPath, "curl") {
			return NewCurlFetcher(env.Runner, env.Timeout), nil
		}
		if exec.Available(env.LookPath, "wget") {
			return NewWgetFetcher(env.Runner, env.Timeout), nil
		}
		return nil, fmt.Errorf("%w: neither curl nor wget is on PATH", ErrNoFetcherAvailable)
	default:
		return nil, fmt.Errorf("unsupported fetcher method %q", method)
	}
}
