package warmer

import (
	"encoding/json"
	"fmt"
)

const (
	// TypeWarmInstallations refreshes the installation list and fans out node tasks
	TypeWarmInstallations = "warm:installations"
	// TypeWarmNodes refreshes the node list of one installation
	TypeWarmNodes = "warm:nodes"
)

// NodesPayload is the payload of a TypeWarmNodes task
type NodesPayload struct {
	Installation string `json:"installation"`
}

// UniqueID returns the task id used to deduplicate pending node tasks
func (p NodesPayload) UniqueID() string {
	return fmt.Sprintf("%s:%s", TypeWarmNodes, p.Installation)
}

func decodeNodesPayload(data []byte) (NodesPayload, error) {
	var p NodesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode %s payload: %w", TypeWarmNodes, err)
	}

	if p.Installation == "" {
		return p, ErrInstallationRequired
	}

	return p, nil
}
