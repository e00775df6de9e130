package types

// FullCode bundles the fragments for a complete document module.
type FullCode struct {
	Model        string `json:"model"`
	Controller   string `json:"controller"`
	MainView     string `json:"main_view"`
	ListView     string `json:"list_view"`
	DocumentView string `json:"document_view"`
}

// LinesCode bundles the fragments for a detail-lines module.
type LinesCode struct {
	Model            string `json:"model"`
	PartialView      string `json:"partial_view"`
	ControllerMethod string `json:"controller_method"`
}

// FunctionCode bundles the fragments generated from a SOAP function signature.
type FunctionCode struct {
	RequestModel     string `json:"request_model"`
	ControllerMethod string `json:"controller_method"`
	FormView         string `json:"form_view"`
}
