// Package resource bounds the work an Engine performs at once.
//
// A Controller hands out run slots (how many runs execute concurrently) and
// tracks the memory retained by cached runs against an optional hard limit.
// A nil *Controller is valid and imposes no limits.
package resource
