package main

/*
#include <stdlib.h>
#include <string.h>

typedef int (*pluginCallback)(char const *name, char const *function, char const *data);

static inline int runPluginCallback(pluginCallback fnc, char const *name, char const *function, char const *data)
{
	return fnc(name, function, data);
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/hostinterface"
)

var (
	callbackMu  sync.Mutex
	callbackFnc C.pluginCallback
)

// called by the host to get the plugin version
//
//export PluginVersion
func PluginVersion(output *C.char, outputsize C.size_t) {
	reply(hostinterface.Version(), output, outputsize)
}

// called by the host with a bare command, optionally "cmd|arg|arg"
//
//export PluginCall
func PluginCall(output *C.char, outputsize C.size_t, input *C.char) {
	reply(hostinterface.Call(C.GoString(input), nil), output, outputsize)
}

// called by the host with a command and an argument array
//
//export PluginCallArgs
func PluginCallArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	reply(hostinterface.Call(C.GoString(input), argsFromC(argv, argc)), output, outputsize)
}

// called by the host once with the function used for async messages
//
//export PluginRegisterCallback
func PluginRegisterCallback(fnc C.pluginCallback) {
	callbackMu.Lock()
	callbackFnc = fnc
	callbackMu.Unlock()

	if fnc == nil {
		hostinterface.SetCallback(nil)
		return
	}
	hostinterface.SetCallback(runCallback)
	if err := hostinterface.WriteCallback(":READY:", CurrentPluginVersion); err != nil {
		Logger.Error("Failed to send ready callback", "error", err)
	}
}

func runCallback(name, function, data string) {
	cName, cFunction, cData := C.CString(name), C.CString(function), C.CString(data)
	defer C.free(unsafe.Pointer(cName))
	defer C.free(unsafe.Pointer(cFunction))
	defer C.free(unsafe.Pointer(cData))

	callbackMu.Lock()
	defer callbackMu.Unlock()
	if callbackFnc != nil {
		C.runPluginCallback(callbackFnc, cName, cFunction, cData)
	}
}

func argsFromC(argv **C.char, argc C.int) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	raw := unsafe.Slice(argv, int(argc))
	args := make([]string, len(raw))
	for i, a := range raw {
		args[i] = C.GoString(a)
	}
	return args
}

// reply copies response into the host buffer, truncating to outputsize.
func reply(response string, output *C.char, outputsize C.size_t) {
	if outputsize == 0 {
		return
	}
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	size := C.strlen(result) + 1
	if size > outputsize {
		size = outputsize
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), size)
	if size == outputsize {
		// keep the truncated reply terminated
		*(*C.char)(unsafe.Add(unsafe.Pointer(output), int(outputsize)-1)) = 0
	}
}
