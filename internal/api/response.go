// response.go - Response envelope shared with peers and the frontend
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is negotiated through the Accept header.
const MIMEApplicationMsgpack = "application/msgpack"

// Envelope is the {success, message, data} body of every API response.
// Peers parse this shape, so it must stay stable.
type Envelope struct {
	Success bool        `json:"success" msgpack:"success"`
	Message string      `json:"message" msgpack:"message"`
	Code    string      `json:"code,omitempty" msgpack:"code,omitempty"`
	Details string      `json:"details,omitempty" msgpack:"details,omitempty"`
	Data    interface{} `json:"data" msgpack:"data"`
}

// Success wraps data in a successful envelope.
func Success(data interface{}) Envelope {
	return Envelope{Success: true, Message: "success", Data: data}
}

// respond writes an envelope as JSON, or msgpack when the client asks for it.
func respond(c echo.Context, status int, env Envelope) error {
	if wantsMsgpack(c) {
		data, err := msgpack.Marshal(env)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(status, MIMEApplicationMsgpack, data)
	}
	return c.JSON(status, env)
}

// respondOK writes a successful envelope with status 200.
func respondOK(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, Success(data))
}

func wantsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack)
}
