package engine

import (
	"go.uber.org/zap"
)

// Init announces the built device table. The table itself is
// constructed by New; Init exists as the lifecycle point the node
// drives between configuration and serving.
func (e *StorageEngine) Init() error {
	e.log.Info("storage engine initialized",
		zap.Int("devices", len(e.devices)),
	)

	return nil
}

// Close trims every device of the table and marks the engine closed.
// Waits for in-flight operations to drain; subsequent operations
// fail with ErrClosed.
func (e *StorageEngine) Close() error {
	if !e.closed.CAS(false, true) {
		return nil
	}

	for i, d := range e.devices {
		if err := d.Close(); err != nil {
			e.log.Debug("could not close device",
				zap.Int("device", i),
				zap.String("error", err.Error()),
			)
		}
	}

	e.log.Info("storage engine closed",
		zap.Int("devices", len(e.devices)),
	)

	return nil
}
