package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/grapplehook/grapple"
	"github.com/milk9111/grapplehook/prefabs"
)

// A hook script defines on_start(engine, point), on_end(engine, reason) and
// on_no_target(engine). point is [x, y]; reason is the exit reason name.
const grappleHookDispatchScript = `
if __phase == "start" {
	on_start(__engine, __arg)
} else if __phase == "end" {
	on_end(__engine, __arg)
} else if __phase == "no_target" {
	on_no_target(__engine)
}
`

// grappleHookEngine is what a hook script can reach.
type grappleHookEngine struct {
	Log   func(msg string)
	Shake func(amount float64)
	Speed func() float64
}

type grappleHooks struct {
	scriptPath string
	compiled   *tengo.Compiled
}

func loadGrappleHooks(scriptPath string) (*grappleHooks, error) {
	if strings.TrimSpace(scriptPath) == "" {
		return nil, fmt.Errorf("grapple hooks: empty script path")
	}
	scriptBytes, err := prefabs.LoadScript(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("grapple hooks: load %q: %w", scriptPath, err)
	}

	src := string(scriptBytes) + "\n" + grappleHookDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__arg", nil)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("grapple hooks: compile %q: %w", scriptPath, err)
	}
	return &grappleHooks{scriptPath: scriptPath, compiled: compiled}, nil
}

// dispatch runs the hook matching evt. Script errors are returned, never
// raised into the simulation.
func (h *grappleHooks) dispatch(evt grapple.Event, engine grappleHookEngine) error {
	if h == nil || h.compiled == nil {
		return fmt.Errorf("nil grapple hooks")
	}
	var (
		phase string
		arg   any
	)
	switch evt.Kind {
	case grapple.EventStarted:
		phase = "start"
		arg = []any{evt.Point.X, evt.Point.Y}
	case grapple.EventEnded:
		phase = "end"
		arg = evt.Reason.String()
	case grapple.EventNoTarget:
		phase = "no_target"
	default:
		return nil
	}

	if err := h.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := h.compiled.Set("__engine", buildGrappleHookEngine(engine)); err != nil {
		return err
	}
	if err := h.compiled.Set("__arg", arg); err != nil {
		return err
	}
	return h.compiled.Run()
}

func buildGrappleHookEngine(engine grappleHookEngine) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if engine.Log == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		engine.Log(objectAsString(args[0]))
		return tengo.TrueValue, nil
	}}

	values["shake"] = &tengo.UserFunction{Name: "shake", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if engine.Shake == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		amount, ok := tengo.ToFloat64(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		engine.Shake(amount)
		return tengo.TrueValue, nil
	}}

	values["speed"] = &tengo.UserFunction{Name: "speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if engine.Speed == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: engine.Speed()}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// hookLogger adapts a *log.Logger for scripts.
func hookLogger(l *log.Logger, scriptPath string) func(string) {
	return func(msg string) {
		l.Printf("grapple: script %s: %s", scriptPath, msg)
	}
}
