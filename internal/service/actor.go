package service

import (
	"strconv"

	pkgerrors "SevenDay/pkg/errors"
	"SevenDay/pkg/token"
)

// Actor 发起请求的参与者，由 handler 从 token 中取出后显式传入
type Actor struct {
	ParticipantID string
	Capabilities  []string
}

func (a Actor) Can(capability string) bool {
	return token.HasCapability(a.Capabilities, capability)
}

func parseID(id string, invalid error) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, invalid
	}
	return n, nil
}

func parseParticipantID(id string) (int64, error) {
	return parseID(id, pkgerrors.InvalidUserID)
}
