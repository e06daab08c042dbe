package streaming

import "github.com/labstack/echo/v4"

type Handlers interface {
	StreamInfo() echo.HandlerFunc
	StreamVideo() echo.HandlerFunc
	StartSession() echo.HandlerFunc
	UpdateSession() echo.HandlerFunc
	EndSession() echo.HandlerFunc
	ActiveSessions() echo.HandlerFunc
	UserStats() echo.HandlerFunc
	MovieStats() echo.HandlerFunc
}
