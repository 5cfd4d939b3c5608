package retrieve

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/goliatone/go-confres"
)

// DefaultScriptTimeout bounds how long a configuration script may run.
const DefaultScriptTimeout = 2 * time.Second

// DecodeScript evaluates a configuration script such as
//
//	var config = { hosts: { domain: "example.com" } };
//
// and exports the object bound to global. The script runs in an empty
// runtime with no host bindings and is interrupted after timeout
// (DefaultScriptTimeout when timeout is not positive).
func DecodeScript(data []byte, global string, timeout time.Duration) (confres.Values, error) {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}

	program, err := goja.Compile(global+".js", string(data), false)
	if err != nil {
		return nil, fmt.Errorf("retrieve: compile %s script: %w", global, err)
	}

	vm := goja.New()
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt(fmt.Sprintf("script exceeded %s", timeout))
	})
	defer timer.Stop()

	if _, err := vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("retrieve: run %s script: %w", global, err)
	}

	value := vm.Get(global)
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("retrieve: script does not define %q", global)
	}
	exported, ok := value.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("retrieve: %q is not an object", global)
	}
	return confres.Values(normalizeMap(exported)), nil
}
