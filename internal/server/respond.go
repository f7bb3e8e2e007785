package server

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
)

// respondOK writes the uniform success envelope with the payload
// fields merged in.
func respondOK(ctx iris.Context, payload iris.Map) {
	body := iris.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	_ = ctx.JSON(body)
}

// respondErr maps the error taxonomy onto the API's status codes and
// keeps raw detail out of the response body.
func respondErr(ctx iris.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		zap.L().Error("request failed",
			zap.String("path", ctx.Path()),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err))
	}
	ctx.StopWithJSON(status, iris.Map{
		"success": false,
		"error":   apperr.UserMessage(err),
	})
}

// respondBadRequest is the shortcut for body-decoding failures.
func respondBadRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(400, iris.Map{
		"success": false,
		"error":   msg,
	})
}
