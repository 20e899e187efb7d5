package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StreakContractABI is the external surface of the deployed streak contract.
// The contract owns all streak rules (increment, cooldown, one log per day);
// this package only marshals calls to it.
const StreakContractABI = `[
	{"type":"function","name":"startStreak","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"logDay","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getStreak","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getLastLogDay","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getTokenId","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"StreakStarted","inputs":[{"name":"user","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"DayLogged","inputs":[{"name":"user","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":false},{"name":"newStreakCount","type":"uint256","indexed":false}],"anonymous":false}
]`

// ParseStreakABI parses the embedded contract ABI.
func ParseStreakABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(StreakContractABI))
}

// StreakStartedEvent is the decoded StreakStarted log.
type StreakStartedEvent struct {
	User    common.Address
	TokenID *big.Int
}

// DayLoggedEvent is the decoded DayLogged log.
type DayLoggedEvent struct {
	User           common.Address
	TokenID        *big.Int
	NewStreakCount *big.Int
}

// ParseStreakStarted decodes a StreakStarted log. Not consumed by the
// controller today; exposed for event-driven refresh.
func (c *Client) ParseStreakStarted(lg types.Log) (*StreakStartedEvent, error) {
	event := c.abi.Events["StreakStarted"]
	if len(lg.Topics) < 2 || lg.Topics[0] != event.ID {
		return nil, fmt.Errorf("log is not a StreakStarted event")
	}

	values, err := c.abi.Unpack("StreakStarted", lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to unpack StreakStarted data: %w", err)
	}
	tokenID, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected StreakStarted payload type %T", values[0])
	}

	return &StreakStartedEvent{
		User:    common.BytesToAddress(lg.Topics[1].Bytes()),
		TokenID: tokenID,
	}, nil
}

// ParseDayLogged decodes a DayLogged log.
func (c *Client) ParseDayLogged(lg types.Log) (*DayLoggedEvent, error) {
	event := c.abi.Events["DayLogged"]
	if len(lg.Topics) < 2 || lg.Topics[0] != event.ID {
		return nil, fmt.Errorf("log is not a DayLogged event")
	}

	values, err := c.abi.Unpack("DayLogged", lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to unpack DayLogged data: %w", err)
	}
	tokenID, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected DayLogged payload type %T", values[0])
	}
	newCount, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected DayLogged payload type %T", values[1])
	}

	return &DayLoggedEvent{
		User:           common.BytesToAddress(lg.Topics[1].Bytes()),
		TokenID:        tokenID,
		NewStreakCount: newCount,
	}, nil
}
