package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec carries plain Go structs over the Connect protocol. It replaces
// the default "json" codec, which only accepts protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// ClientOptions returns the options a Connect client needs to talk to these
// services.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{})}
}
