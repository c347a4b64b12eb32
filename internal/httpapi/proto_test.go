package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func protoRequest(t *testing.T, fields map[string]any) *http.Request {
	t.Helper()
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/v1/kiosks/front/checkin", bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/x-protobuf; charset=binary")
	return r
}

func TestIsProtobuf(t *testing.T) {
	tests := map[string]bool{
		"application/x-protobuf":                true,
		"application/x-protobuf; charset=utf-8": true,
		"application/octet-stream":              true,
		"application/json":                      false,
		"":                                      false,
	}
	for ct, want := range tests {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Content-Type", ct)
		if got := isProtobuf(r); got != want {
			t.Errorf("isProtobuf(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestReadCheckInProto(t *testing.T) {
	req, err := readCheckInProto(protoRequest(t, map[string]any{"token": "7777", "source": "scan"}))
	if err != nil {
		t.Fatalf("readCheckInProto: %v", err)
	}
	if req.Token != "7777" || req.Source != "scan" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestReadCheckInProto_Rejects(t *testing.T) {
	tests := map[string]map[string]any{
		"unknown field":  {"token": "7777", "extra": "x"},
		"numeric token":  {"token": 7777.0},
		"boolean source": {"token": "7777", "source": true},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := readCheckInProto(protoRequest(t, fields)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	t.Run("garbage", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("\xff\xff\xff"))
		if _, err := readCheckInProto(r); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("oversized", func(t *testing.T) {
		r := protoRequest(t, map[string]any{"token": strings.Repeat("x", maxRequestBody)})
		if _, err := readCheckInProto(r); err != errBodyTooLarge {
			t.Errorf("expected errBodyTooLarge, got %v", err)
		}
	})
}
