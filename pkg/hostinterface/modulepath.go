package hostinterface

/*
#cgo windows LDFLAGS: -lpsapi
#cgo linux LDFLAGS: -ldl

#ifdef _WIN32
#define WIN32_LEAN_AND_MEAN
#include <windows.h>
#include <stdlib.h>

static char* pluginModulePath() {
    HMODULE hModule = NULL;
    if (!GetModuleHandleExA(GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS |
                           GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT,
                           (LPCTSTR)pluginModulePath, &hModule)) {
        return NULL;
    }
    DWORD size = MAX_PATH;
    char* buffer = NULL;
    for (;;) {
        char* grown = (char*)realloc(buffer, size);
        if (!grown) {
            free(buffer);
            return NULL;
        }
        buffer = grown;
        DWORD n = GetModuleFileNameA(hModule, buffer, size);
        if (n == 0) {
            free(buffer);
            return NULL;
        }
        if (n < size) {
            return buffer;
        }
        size *= 2;
    }
}

#else

#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>

static char* pluginModulePath() {
    Dl_info info;
    if (dladdr((void*)pluginModulePath, &info) == 0 || info.dli_fname == NULL) {
        return NULL;
    }
    return strdup(info.dli_fname);
}

#endif
*/
import "C"

import (
	"os"
	"path/filepath"
	"unsafe"
)

// ModulePath returns the absolute path of the loaded plugin library, or
// the running executable when that cannot be determined.
func ModulePath() string {
	p := C.pluginModulePath()
	if p == nil {
		exe, _ := os.Executable()
		return exe
	}
	defer C.free(unsafe.Pointer(p))
	return C.GoString(p)
}

// ModuleDir is the directory holding the plugin library. Config, logs and
// the library files live next to it.
func ModuleDir() string {
	return filepath.Dir(ModulePath())
}
