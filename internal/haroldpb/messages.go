// Package haroldpb is a hand-authored stand-in for the output of
// protoc-gen-go and protoc-gen-go-grpc against proto/harold.proto. No
// protoc toolchain is available in this environment, so the message
// types, service interface, and ServiceDesc below are written directly in
// the shape those generators produce.
//
// Wire marshaling uses a JSON codec (see codec.go) registered under the
// grpc codec name "proto", rather than the real protobuf wire format:
// hand-rolling a correct protoreflect-backed message (the machinery
// protoc-gen-go actually emits, including a compiled FileDescriptorProto)
// cannot be verified without the toolchain this environment withholds.
// A real deployment regenerates this package with protoc against
// proto/harold.proto, which restores true protobuf wire compatibility
// with grpcurl and other standard protobuf clients.
package haroldpb

// TurnCompleteRequest mirrors proto/harold.proto's TurnCompleteRequest.
type TurnCompleteRequest struct {
	PaneID           string `json:"pane_id"`
	PaneLabel        string `json:"pane_label"`
	LastUserPrompt   string `json:"last_user_prompt"`
	AssistantMessage string `json:"assistant_message"`
	MainContext      string `json:"main_context"`
}

// TurnCompleteResponse mirrors proto/harold.proto's TurnCompleteResponse.
type TurnCompleteResponse struct {
	Accepted bool `json:"accepted"`
}
