package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Network 网络标识 (写入交易的 network 字段)
type Network uint8

const (
	MainNet   Network = 0x00
	StageNet  Network = 0x01
	NextNet   Network = 0x02
	LocalNet  Network = 0x10
	Igor      Network = 0x24
	Esmeralda Network = 0x26
)

var networkNames = map[Network]string{
	MainNet:   "mainnet",
	StageNet:  "stagenet",
	NextNet:   "nextnet",
	LocalNet:  "localnet",
	Igor:      "igor",
	Esmeralda: "esmeralda",
}

func (n Network) String() string {
	if name, ok := networkNames[n]; ok {
		return name
	}
	return fmt.Sprintf("network(%d)", uint8(n))
}

// ParseNetwork accepts a network name ("igor") or a numeric byte ("36", "0x24").
func ParseNetwork(s string) (Network, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, name := range networkNames {
		if name == s {
			return n, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown network %q", s)
	}
	return Network(v), nil
}
