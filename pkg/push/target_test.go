package push_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

func TestTarget_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		target  push.Target
		wantErr error
	}{
		{name: "All needs no value", target: push.AllTarget()},
		{name: "Single with token", target: push.SingleTarget("tok1")},
		{name: "Topic with name", target: push.TopicTarget("limpeza")},
		{name: "Single without token", target: push.Target{Type: push.TargetSingle}, wantErr: push.ErrInvalidTarget},
		{name: "Topic without name", target: push.Target{Type: push.TargetTopic}, wantErr: push.ErrInvalidTarget},
		{name: "Unknown type", target: push.Target{Type: "everyone"}, wantErr: push.ErrUnsupportedTarget},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.target.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, errors.Is(err, push.ErrValidation), "target errors are validation errors")
		})
	}
}

func TestParseTargetType(t *testing.T) {
	for _, tt := range push.TargetTypes {
		got, err := push.ParseTargetType(string(tt))
		assert.NoError(t, err)
		assert.Equal(t, tt, got)
	}

	_, err := push.ParseTargetType("broadcast")
	assert.ErrorIs(t, err, push.ErrUnsupportedTarget)
}

func TestTypeCounts_Add(t *testing.T) {
	var c push.TypeCounts
	c.Add(push.TargetAll)
	c.Add(push.TargetTopic)
	c.Add(push.TargetTopic)
	c.Add("bogus")

	assert.Equal(t, push.TypeCounts{All: 1, Topic: 2}, c)
}
