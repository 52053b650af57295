package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWorkerCount(t *testing.T) {
	cases := []struct {
		raw    string
		want   int
		warned bool
	}{
		{"", defaultWorkers, false},
		{"8", 8, false},
		{"eight", defaultWorkers, true},
		{"0", defaultWorkers, true},
		{"-3", defaultWorkers, true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			assert.Equal(t, tc.want, workerCount(tc.raw, zap.New(core)))
			assert.Equal(t, tc.warned, logs.FilterMessage("notifier_workers_invalid").Len() == 1)
		})
	}
}
