package api

import "time"

type Configuration struct {
	Env        string
	AppName    string
	AppVersion string
	Port       string
	// CorsAllowOrigins are the origins of the designer front-ends. Localhost origins are added in development.
	CorsAllowOrigins []string
	RequestTimeout   time.Duration
	MaxBodySize      int64
}
