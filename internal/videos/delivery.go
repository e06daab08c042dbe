package videos

import "github.com/labstack/echo/v4"

type Handlers interface {
	Upload() echo.HandlerFunc
	Status() echo.HandlerFunc
	ListVideos() echo.HandlerFunc
	Delete() echo.HandlerFunc
	RetryProcessing() echo.HandlerFunc
}
