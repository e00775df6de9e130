package generator

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/yourorg/scaffold/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Context carries everything the fragment templates can reference.
type Context struct {
	PageName       string
	EntityName     string
	ParentEntity   string
	FunctionName   string
	ModelName      string
	ControllerName string
	Namespace      string
	Fields         []types.Field
	Info           types.DocumentInfo
	Parameters     []types.Parameter
	IsLineFunction bool
}

// Renderer turns field and parameter models into code fragments.
// Rendering is mechanical substitution; all decisions were made by the
// classifier upstream.
type Renderer struct {
	namespace string
	tpl       *template.Template
}

func New(namespace string) (*Renderer, error) {
	if namespace == "" {
		namespace = "App.Web"
	}
	tpl, err := template.New("fragments").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{namespace: namespace, tpl: tpl}, nil
}

// FullCode renders the complete document module fragment set.
func (r *Renderer) FullCode(fields []types.Field, info types.DocumentInfo, pageName, entityName string) types.FullCode {
	if entityName == "" {
		entityName = pageName + "Voucher"
	}
	ctx := Context{
		PageName:       pageName,
		EntityName:     entityName,
		ModelName:      pageName + "Model",
		ControllerName: pageName + "Controller",
		Namespace:      r.namespace,
		Fields:         fields,
		Info:           info,
	}
	return types.FullCode{
		Model:        r.render("model.cs.tmpl", ctx),
		Controller:   r.render("controller.cs.tmpl", ctx),
		MainView:     r.render("main_view.cshtml.tmpl", ctx),
		ListView:     r.render("list_view.cshtml.tmpl", ctx),
		DocumentView: r.render("document_view.cshtml.tmpl", ctx),
	}
}

// LinesCode renders the detail-lines fragment set.
func (r *Renderer) LinesCode(fields []types.Field, info types.DocumentInfo, pageName, entityName, parentEntity string) types.LinesCode {
	if entityName == "" {
		entityName = pageName + "Lines"
	}
	if parentEntity == "" {
		parentEntity = pageName
	}
	ctx := Context{
		PageName:     pageName,
		EntityName:   entityName,
		ParentEntity: parentEntity,
		ModelName:    pageName + "LinesModel",
		Namespace:    r.namespace,
		Fields:       fields,
		Info:         info,
	}
	return types.LinesCode{
		Model:            r.render("lines_model.cs.tmpl", ctx),
		PartialView:      r.render("lines_view.cshtml.tmpl", ctx),
		ControllerMethod: r.render("lines_controller_method.cs.tmpl", ctx),
	}
}

// FunctionCode renders the fragments for one SOAP function signature.
func (r *Renderer) FunctionCode(params []types.Parameter, pageName, functionName string, isLine bool) types.FunctionCode {
	if functionName == "" {
		functionName = "Post" + pageName
	}
	ctx := Context{
		PageName:       pageName,
		FunctionName:   functionName,
		ModelName:      functionName + "Request",
		Namespace:      r.namespace,
		Parameters:     params,
		IsLineFunction: isLine,
	}
	return types.FunctionCode{
		RequestModel:     r.render("function_model.cs.tmpl", ctx),
		ControllerMethod: r.render("function_controller_method.cs.tmpl", ctx),
		FormView:         r.render("function_form.cshtml.tmpl", ctx),
	}
}

// render executes one named template. A failing fragment degrades to
// an inline error marker instead of failing the whole response.
func (r *Renderer) render(name string, ctx Context) string {
	var b strings.Builder
	if err := r.tpl.ExecuteTemplate(&b, name, ctx); err != nil {
		return fmt.Sprintf("// generation error: %v", err)
	}
	return b.String()
}
