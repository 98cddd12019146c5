package script

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const (
	// entryPoint is the function every script must define
	entryPoint = "run"

	resultMarker = "__result"
)

// prelude defines the result helpers scripts return. They may be called with or without `new`.
const prelude = `
function JsonResult(obj) { return { __result: "json", status_code: 200, body: obj }; }
function HtmlResult(html) { return { __result: "html", status_code: 200, body: String(html) }; }
function RedirectResult(url) { return { __result: "redirect", status_code: 302, location: String(url) }; }
function StatusCodeResult(code, message) { return { __result: "status_code", status_code: code, body: message }; }
`

// Goja runs functions written in JavaScript. Every run gets a fresh VM.
type Goja struct {
	caps *Capabilities
	log  *zap.Logger
}

func NewGoja(caps *Capabilities, log *zap.Logger) *Goja {
	if caps == nil {
		caps = &Capabilities{}
	}
	if caps.HTTP == nil {
		caps.HTTP = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Goja{caps: caps, log: log.Named("script")}
}

// Execute runs the script then calls its run(payload) function with the triggering entity.
// The VM is interrupted when ctx is done.
func (g *Goja) Execute(ctx context.Context, run *structs.FunctionRun) (*structs.FunctionResult, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", false))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	err := g.bind(ctx, vm, run)
	if err != nil {
		return nil, err
	}

	_, err = vm.RunScript(run.DeveloperName, run.Code)
	if err != nil {
		return nil, scriptError(err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, fmt.Errorf("%w %s does not define %s(payload)", errors.ErrScript, run.DeveloperName, entryPoint)
	}

	payload, err := toJS(vm, run.Entity, false)
	if err != nil {
		return nil, err
	}

	val, err := fn(goja.Undefined(), payload)
	if err != nil {
		return nil, scriptError(err)
	}
	return toResult(val), nil
}

// bind sets the globals a script can use.
func (g *Goja) bind(ctx context.Context, vm *goja.Runtime, run *structs.FunctionRun) error {
	_, err := vm.RunString(prelude)
	if err != nil {
		return err
	}

	org, err := toJS(vm, g.caps.Organization, true)
	if err != nil {
		return err
	}
	user, err := toJS(vm, g.caps.User, true)
	if err != nil {
		return err
	}

	log := g.log.With(zap.String("function", run.DeveloperName))
	console := vm.NewObject()
	err = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.String()
		}
		log.Info("console.log", zap.Strings("args", args))
		return goja.Undefined()
	})
	if err != nil {
		return err
	}

	globals := map[string]interface{}{
		"CurrentOrganization": org,
		"CurrentUser":         user,
		"HttpClient":          &httpCapability{ctx: ctx, cli: g.caps.HTTP},
		"Emailer":             &emailCapability{ctx: ctx, sender: g.caps.Email},
		"console":             console,
	}
	if g.caps.API != nil {
		globals["API_V1"] = g.caps.API
	}
	for k, v := range globals {
		err = vm.Set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// toJS turns a Go value into a plain JS value via JSON, so scripts see ordinary objects.
func toJS(vm *goja.Runtime, v interface{}, freeze bool) (goja.Value, error) {
	if v == nil {
		return goja.Null(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	parse, _ := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	val, err := parse(goja.Undefined(), vm.ToValue(string(data)))
	if err != nil || !freeze {
		return val, err
	}

	freezeFn, _ := goja.AssertFunction(vm.Get("Object").ToObject(vm).Get("freeze"))
	return freezeFn(goja.Undefined(), val)
}

// toResult converts what run() returned.
func toResult(val goja.Value) *structs.FunctionResult {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return &structs.FunctionResult{Type: structs.ResultValue}
	}

	exported := val.Export()
	m, ok := exported.(map[string]interface{})
	if !ok {
		return &structs.FunctionResult{Type: structs.ResultValue, Body: exported}
	}
	kind, ok := m[resultMarker].(string)
	if !ok {
		return &structs.FunctionResult{Type: structs.ResultValue, Body: exported}
	}

	result := &structs.FunctionResult{Type: kind, Body: m["body"], StatusCode: toInt(m["status_code"])}
	if loc, ok := m["location"].(string); ok {
		result.Location = loc
	}
	return result
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// scriptError converts a goja failure. Interrupts are returned as is so the caller can
// tell a timeout from a script fault.
func scriptError(err error) error {
	switch e := err.(type) {
	case *goja.InterruptedError:
		return e
	case *goja.Exception:
		return fmt.Errorf("%w %s", errors.ErrScript, e.Error())
	case *goja.CompilerSyntaxError:
		return fmt.Errorf("%w syntax error: %s", errors.ErrScript, e.Error())
	default:
		return fmt.Errorf("%w %v", errors.ErrScript, err)
	}
}
