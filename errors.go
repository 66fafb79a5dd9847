package swapvk

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FatalLogFile is where Fatal records the error that stopped the process.
var FatalLogFile = "fatal_log.txt"

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a failed vk.Result into an error that names the calling
// function. It returns nil for vk.Success.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return errors.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret)
	}
	frame := newStackFrame(pc)
	return errors.Errorf("vulkan error: %s (%d) on %s", vk.Error(ret).Error(), ret, frame.String())
}

func newError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.WithStack(vk.Error(ret))
}

type stackFrame struct {
	file string
	line int
	name string
}

func newStackFrame(pc uintptr) stackFrame {
	frame := stackFrame{name: "unknown"}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return frame
	}
	frame.file, frame.line = fn.FileLine(pc)
	frame.name = fn.Name()
	if i := strings.LastIndexByte(frame.name, '/'); i >= 0 {
		frame.name = frame.name[i+1:]
	}
	return frame
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.name, shortFile(f.file), f.line)
}

func shortFile(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Fatal runs the finalizers, records err in FatalLogFile and exits. It does
// nothing when err is nil.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	file, ferr := os.OpenFile(FatalLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if ferr != nil {
		log.Fatalf("%+v", err)
	}
	fatalLog := log.New(file, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile)
	log.Printf("FATAL: %v", err)
	fatalLog.Fatalf("%+v", err)
}

// checkErr turns a panic raised by orPanic into the returned error.
func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = errors.Errorf("%+v", v)
	}
}

func orPanic(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}
		panic(err)
	}
}
