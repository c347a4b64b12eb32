package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// maxRequestBody caps JSON and protobuf request bodies.  Check-in and
// location bodies are a few dozen bytes.
const maxRequestBody = 4096

const contentTypeProtobuf = "application/x-protobuf"

var errBodyTooLarge = errors.New("request body too large")

// isProtobuf reports whether the check-in body is a protobuf
// google.protobuf.Struct rather than JSON.  Scanner firmware sends
// "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	switch mt {
	case contentTypeProtobuf, "application/protobuf", "application/octet-stream":
		return true
	}
	return false
}

// readCheckInProto decodes a Struct body carrying the JSON field names
// ("token", "source").  Unknown fields are rejected to match the JSON
// decoder, and a non-string value for a known field is an error.
func readCheckInProto(r *http.Request) (types.CheckInRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return types.CheckInRequest{}, err
	}
	if len(body) > maxRequestBody {
		return types.CheckInRequest{}, errBodyTooLarge
	}

	var msg structpb.Struct
	if err := proto.Unmarshal(body, &msg); err != nil {
		return types.CheckInRequest{}, err
	}

	var req types.CheckInRequest
	for name, v := range msg.GetFields() {
		var dst *string
		switch name {
		case "token":
			dst = &req.Token
		case "source":
			dst = &req.Source
		default:
			return types.CheckInRequest{}, fmt.Errorf("unknown field %q", name)
		}
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return types.CheckInRequest{}, fmt.Errorf("field %q must be a string", name)
		}
		*dst = s.StringValue
	}
	return req, nil
}

// writeCheckInProto writes resp as a Struct with the JSON field names.
func writeCheckInProto(w http.ResponseWriter, status int, resp types.CheckInResponse) {
	data, err := proto.Marshal(checkInResponseStruct(resp))
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeProtobuf)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func checkInResponseStruct(r types.CheckInResponse) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"ok":          structpb.NewBoolValue(r.OK),
		"kiosk_id":    structpb.NewStringValue(r.KioskID),
		"is_error":    structpb.NewBoolValue(r.IsError),
		"suppressed":  structpb.NewBoolValue(r.Suppressed),
		"code":        structpb.NewStringValue(r.Code),
		"server_time": structpb.NewStringValue(r.ServerTime),
	}
	if r.Message != "" {
		fields["message"] = structpb.NewStringValue(r.Message)
	}
	if r.Event != nil {
		fields["event"] = structpb.NewStructValue(eventStruct(*r.Event))
	}
	return &structpb.Struct{Fields: fields}
}

func eventStruct(ev types.AttendanceEvent) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          structpb.NewStringValue(ev.ID),
		"person_id":   structpb.NewStringValue(ev.PersonID),
		"location_id": structpb.NewStringValue(ev.LocationID),
		"kind":        structpb.NewStringValue(ev.Kind.String()),
		"created_at":  structpb.NewStringValue(ev.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}}
}
