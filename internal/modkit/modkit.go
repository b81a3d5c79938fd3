// Package modkit builds API modules from shared deps and options
package modkit

import "tiba/internal/modkit/module"

// Module is what the API mounts
type Module = module.Module
