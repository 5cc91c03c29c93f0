package models

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// MacroView is the API rendering of a registry entry.
type MacroView struct {
	Binding     string           `json:"binding"`
	Packed      uint32           `json:"packed"`
	Description string           `json:"description"`
	Action      SerializedAction `json:"action"`
}

func NewMacroView(m Macro) MacroView {
	return MacroView{
		Binding:     m.Binding.String(),
		Packed:      m.Binding.Pack(),
		Description: m.Action.Describe(),
		Action:      EncodeAction(m.Action),
	}
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(err string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   err,
	}
}

func MessageResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}
