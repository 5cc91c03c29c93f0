package api

import (
	"errors"
	"net/http"
	"strconv"

	"obsmacros/models"
	"obsmacros/service"

	"github.com/gin-gonic/gin"
)

// GetMacros returns all macros sorted by binding
func GetMacros(c *gin.Context, ms *service.MacroService) {
	list := ms.List()
	views := make([]models.MacroView, 0, len(list))
	for _, m := range list {
		views = append(views, models.NewMacroView(m))
	}
	c.JSON(http.StatusOK, models.SuccessResponse(views))
}

// TriggerMacro runs the macro bound to the :binding path parameter. The
// parameter is either the rendered form (F5+CTRL) or the packed integer.
func TriggerMacro(c *gin.Context, ms *service.MacroService, d *service.Dispatcher) {
	b, ok := bindingParam(c)
	if !ok {
		return
	}

	inv, err := d.Trigger(c.Request.Context(), b, service.SourceHTTP)
	switch {
	case errors.Is(err, service.ErrNoMacro):
		c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse(err.Error()))
	case inv == nil:
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse(err.Error()))
	case err != nil:
		c.JSON(http.StatusBadGateway, errorWithData(inv, err))
	default:
		c.JSON(http.StatusOK, models.SuccessResponse(inv))
	}
}

// DeleteMacro unbinds a key
func DeleteMacro(c *gin.Context, ms *service.MacroService) {
	b, ok := bindingParam(c)
	if !ok {
		return
	}
	if !ms.Unbind(b) {
		c.JSON(http.StatusNotFound, models.ErrorResponse("no macro bound to "+b.String()))
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse("removed "+b.String()))
}

// SaveConfig writes the config file
func SaveConfig(c *gin.Context, ms *service.MacroService) {
	if err := ms.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse("saved"))
}

// GetHistory returns recent invocations, newest first
func GetHistory(c *gin.Context, hs *service.HistoryStore) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultHistoryLimit)))
	list, err := hs.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	if list == nil {
		list = []*models.Invocation{}
	}
	c.JSON(http.StatusOK, models.SuccessResponse(list))
}

func errorWithData(data interface{}, err error) models.APIResponse {
	resp := models.ErrorResponse(err.Error())
	resp.Data = data
	return resp
}

func bindingParam(c *gin.Context) (models.KeyBinding, bool) {
	raw := c.Param("binding")
	if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return models.UnpackKeyBinding(uint32(n)), true
	}
	b, err := models.ParseKeyBinding(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return models.KeyBinding{}, false
	}
	return b, true
}
