package nvm

import (
	"fmt"
	"sort"
	"strings"
)

// Target is a named internal flash layout.
type Target struct {
	Name   string
	Region Region
}

var targetByName = map[string]*Target{}

// Register adds a target to the registry. It panics on duplicate names.
func Register(t *Target) {
	name := strings.ToLower(t.Name)
	if _, ok := targetByName[name]; ok {
		panic("Target already registered with name " + name)
	}
	if err := t.Region.Validate(); err != nil {
		panic(fmt.Sprintf("target %s: %v", name, err))
	}
	targetByName[name] = t
}

// ByName returns the named target, or nil.
func ByName(name string) *Target {
	return targetByName[strings.ToLower(name)]
}

// Names lists registered targets in sorted order.
func Names() []string {
	names := make([]string, 0, len(targetByName))
	for name := range targetByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(&Target{
		Name: "samd21g18",
		Region: Region{
			TotalSize:  0x40000,
			BootSize:   0x8000,
			EEPROMSize: 0x4000,
			PageSize:   64,
		},
	})
	Register(&Target{
		Name: "samd21g17",
		Region: Region{
			TotalSize:  0x20000,
			BootSize:   0x8000,
			EEPROMSize: 0x2000,
			PageSize:   64,
		},
	})
	Register(&Target{
		Name: "samd51j19",
		Region: Region{
			TotalSize:  0x80000,
			BootSize:   0x8000,
			EEPROMSize: 0x4000,
			PageSize:   512,
		},
	})
}
