package transport

import (
	"encoding/json"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Reply is the wire envelope of a command response.
type Reply struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ReplyError     `json:"error,omitempty"`
}

// ReplyError carries a failed command's kind and operator-facing message.
type ReplyError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// EncodeReply renders a command outcome. A non-nil err wins over result.
func EncodeReply(result any, err error) ([]byte, error) {
	if err != nil {
		return json.Marshal(Reply{
			OK:    false,
			Error: &ReplyError{Kind: domain.KindOf(err), Message: domain.MessageOf(err)},
		})
	}

	reply := Reply{OK: true}
	if result != nil {
		data, mErr := json.Marshal(result)
		if mErr != nil {
			return nil, mErr
		}
		reply.Result = data
	}
	return json.Marshal(reply)
}

// DecodeReply parses an envelope. Failed commands come back as the matching
// domain error; an unreadable envelope is a transport error. When out is set
// the reply must carry a non-null result.
func DecodeReply(data []byte, out any) error {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return domain.Transportf("malformed reply: %v", err)
	}

	if !reply.OK {
		if reply.Error == nil {
			return domain.Backendf("command failed without an error message")
		}
		return domain.FromKind(reply.Error.Kind, reply.Error.Message)
	}

	if out == nil {
		return nil
	}
	if len(reply.Result) == 0 || string(reply.Result) == "null" {
		return domain.Transportf("reply carried no result")
	}
	if err := json.Unmarshal(reply.Result, out); err != nil {
		return domain.Transportf("malformed result: %v", err)
	}
	return nil
}
