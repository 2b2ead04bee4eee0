// Package dock detects the presence and engagement state of a ThinkPad
// docking station through the kernel's ACPI dock driver.
package dock

import "os"

// Fixed paths exposed by the ACPI dock driver for the ThinkPad dock slot.
const (
	defaultDockedPath   = "/sys/devices/platform/dock.2/docked"
	defaultModaliasPath = "/sys/devices/platform/dock.2/modalias"

	// dockID is the hardware identity a recognized ThinkPad dock reports
	// in its modalias file.
	dockID = "acpi:IBM0079:PNP0C15:LNXDOCK:\n"
)

// Sensor answers two questions: is a recognized dock device physically
// present, and is it currently engaged. Both queries default to false on
// any I/O error, so a machine without the dock driver simply reads as
// undocked.
type Sensor struct {
	dockedPath   string
	modaliasPath string
}

// NewSensor returns a sensor bound to the standard ACPI dock paths.
func NewSensor() *Sensor {
	return &Sensor{
		dockedPath:   defaultDockedPath,
		modaliasPath: defaultModaliasPath,
	}
}

// newSensorAt binds a sensor to alternate status files, for tests.
func newSensorAt(dockedPath, modaliasPath string) *Sensor {
	return &Sensor{
		dockedPath:   dockedPath,
		modaliasPath: modaliasPath,
	}
}

// Probe reports whether a recognized dock device is physically present, by
// matching the slot's hardware identity file.
func (s *Sensor) Probe() bool {
	data, err := os.ReadFile(s.modaliasPath)
	if err != nil {
		return false
	}
	return string(data) == dockID
}

// Docked reports whether the dock is currently engaged.
func (s *Sensor) Docked() bool {
	data, err := os.ReadFile(s.dockedPath)
	if err != nil || len(data) == 0 {
		return false
	}
	return data[0] == '1'
}

// DockedPath returns the status file a watcher should observe for
// engagement changes.
func (s *Sensor) DockedPath() string { return s.dockedPath }
