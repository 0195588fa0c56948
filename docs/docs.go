// Package docs Rider Safety API.
//
// Trust and safety endpoints for rider messaging and photo uploads.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//     - multipart/form-data
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/rider-safety-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/messages messages sendMessage
// Sends a direct message. The message is scanned for scams after the response.
// responses:
//   201: messageResponse
//   403: errorResponse
//   429: errorResponse

// swagger:parameters sendMessage
type sendMessageParamsWrapper struct {
	// in:body
	Body models.SendMessageRequest
}

// The stored message.
// swagger:response messageResponse
type messageResponseWrapper struct {
	// in:body
	Body models.Message
}

// swagger:route POST /api/v1/images images uploadImage
// Uploads a photo. Rejected photos are never stored.
// responses:
//   201: imageResponse
//   422: errorResponse

// The stored image and its moderation status.
// swagger:response imageResponse
type imageResponseWrapper struct {
	// in:body
	Body models.Image
}

// swagger:route GET /api/v1/admin/flags moderation listFlags
// Lists content flags, highest risk first.
// responses:
//   200: flagsResponse
//   403: errorResponse

// swagger:parameters listFlags
type listFlagsParamsWrapper struct {
	// pending, reviewed, dismissed or all
	// in:query
	Status string `json:"status"`
}

// Content flags.
// swagger:response flagsResponse
type flagsResponseWrapper struct {
	// in:body
	Body []models.ContentFlag
}

// swagger:route POST /api/v1/admin/flags/{flagId}/ban moderation banFromFlag
// Bans a user and closes the flag as reviewed.
// responses:
//   200: successResponse
//   404: errorResponse

// swagger:parameters banFromFlag
type banFromFlagParamsWrapper struct {
	// in:path
	FlagID string `json:"flagId"`
	// in:body
	Body models.BanRequest
}

// swagger:route GET /api/v1/admin/users/{userId}/risk-flags moderation riskFlags
// Signup risk indicators for a user.
// responses:
//   200: riskFlagsResponse

// swagger:response riskFlagsResponse
type riskFlagsResponseWrapper struct {
	// in:body
	Body models.RiskFlagsResponse
}

// swagger:response successResponse
type successResponseWrapper struct {
	// in:body
	Body models.SuccessResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorResponse
}
