package bootstrap

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

const uidStartTimeLayout = "2006-01-02"

// newUIDGenerator builds the process-wide Sonyflake generator. The start
// time and machine id must be stable across deployments or ids collide.
func newUIDGenerator(startTime string, machineID uint16) (*sonyflake.Sonyflake, error) {
	start, err := time.Parse(uidStartTimeLayout, startTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}

	return sonyflake.New(sonyflake.Settings{
		StartTime: start,
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	})
}
