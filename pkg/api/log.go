package api

import (
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the root class for failures originating in this package
// itself (body-stream read failures, search request encoding) rather
// than a collaborator.
var Error = errs.Class("api")

func zapErr(err error) zap.Field  { return zap.Error(err) }
func zapStr(k, v string) zap.Field { return zap.String(k, v) }
