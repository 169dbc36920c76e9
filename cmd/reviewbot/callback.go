package main

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/models"
)

// Callback actions carried in inline keyboard button data. The post id is
// always the last underscore-separated token, platforms ride dash-joined
// so they never collide with the separator.
const (
	ActionReject       = "reject"
	ActionProcess      = "process"
	ActionFinalApprove = "final_approve"
)

type Callback struct {
	Action    string
	Platforms []string
	PostID    primitive.ObjectID
}

func EncodeReject(id primitive.ObjectID) string {
	return fmt.Sprintf("%s_%s", ActionReject, id.Hex())
}

func EncodeFinalApprove(id primitive.ObjectID) string {
	return fmt.Sprintf("%s_%s", ActionFinalApprove, id.Hex())
}

func EncodeProcess(id primitive.ObjectID, platforms []string) string {
	return fmt.Sprintf("%s_%s_%s", ActionProcess, strings.Join(platforms, "-"), id.Hex())
}

// DecodeCallback parses button data back into an action.
func DecodeCallback(data string) (Callback, error) {
	tokens := strings.Split(data, "_")
	if len(tokens) < 2 {
		return Callback{}, fmt.Errorf("malformed callback data %q", data)
	}

	id, err := primitive.ObjectIDFromHex(tokens[len(tokens)-1])
	if err != nil {
		return Callback{}, fmt.Errorf("malformed post id in callback data %q: %w", data, err)
	}

	action := strings.Join(tokens[:len(tokens)-1], "_")

	if strings.HasPrefix(action, ActionProcess+"_") {
		raw := strings.TrimPrefix(action, ActionProcess+"_")
		platforms := strings.Split(raw, "-")
		for _, p := range platforms {
			if !models.IsContentPlatform(p) {
				return Callback{}, fmt.Errorf("unknown platform %q in callback data %q", p, data)
			}
		}
		return Callback{Action: ActionProcess, Platforms: platforms, PostID: id}, nil
	}

	switch action {
	case ActionReject, ActionFinalApprove:
		return Callback{Action: action, PostID: id}, nil
	}

	return Callback{}, fmt.Errorf("unknown callback action %q", action)
}
