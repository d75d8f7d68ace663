// Package middleware provides HTTP middleware for the control API: request
// logging in W3C Extended Log Format and Prometheus request metrics labelled
// by route template.
package middleware
