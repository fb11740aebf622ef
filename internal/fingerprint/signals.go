package fingerprint

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/term"
)

// HostSignals probes the live host for the ordered signal set. Every probe
// degrades to an empty string rather than failing; a console without a tty
// still fingerprints deterministically.
func HostSignals() Signals {
	return Signals{
		UserAgent: hostUserAgent(),
		Locale:    hostLocale(),
		CPUCount:  strconv.Itoa(runtime.NumCPU()),
		MemoryGB:  hostMemoryGB(),
		Screen:    hostScreen(),
		Timezone:  hostTimezone(),
	}
}

func hostUserAgent() string {
	return fmt.Sprintf("TraceguardConsole/1.0 (%s; %s; %s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func hostLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// hostMemoryGB rounds total memory down to whole GiB so minor kernel
// reservations don't shift the fingerprint between boots.
func hostMemoryGB() string {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return ""
	}
	return strconv.FormatUint(vm.Total/(1<<30), 10)
}

func hostScreen() string {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func hostTimezone() string {
	name, _ := time.Now().Zone()
	if loc := time.Local; loc != nil && loc.String() != "Local" {
		return loc.String()
	}
	return name
}
