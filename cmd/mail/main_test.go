package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wneessen/go-mail"
)

func TestBuildBodyRejectsUnknownType(t *testing.T) {
	err := buildBody(mail.NewMsg(), incomingMail{Type: "create_user", Data: json.RawMessage(`{}`)})
	assert.ErrorContains(t, err, "no soportado")
}

func TestBuildBodyRejectsMalformedData(t *testing.T) {
	err := buildBody(mail.NewMsg(), incomingMail{Type: "dispatch_manifest", Data: json.RawMessage(`{"pickups":"muchos"}`)})
	assert.Error(t, err)
}
