package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID is mixed into the machine ID so the raw ID is never published.
const AppID = "robo.swerve"

// MachineID retrieves the unique ID identifying the machine. The hostname
// is used when the machine ID is not available.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if id, err = os.Hostname(); err != nil {
		panic(err)
	}
	return id
}
