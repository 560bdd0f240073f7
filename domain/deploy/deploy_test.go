package deploy_test

import (
	"errors"
	"testing"
	"time"

	"github.com/metagate/metagate/domain/deploy"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	tests := []struct {
		name       string
		out        deploy.ToolOutput
		runErr     error
		wantStatus deploy.Status
		wantError  string
	}{
		{
			name:       "success",
			out:        deploy.ToolOutput{Stdout: "Deploy Succeeded."},
			wantStatus: deploy.StatusSucceeded,
			wantError:  "",
		},
		{
			name:       "failure with stderr",
			out:        deploy.ToolOutput{Stdout: "partial", Stderr: "Error: org not found"},
			runErr:     errors.New("exit status 1"),
			wantStatus: deploy.StatusFailed,
			wantError:  "Error: org not found",
		},
		{
			name:       "failure without stderr keeps the error text",
			out:        deploy.ToolOutput{},
			runErr:     errors.New("executable not found"),
			wantStatus: deploy.StatusFailed,
			wantError:  "executable not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := deploy.NewRecord("dep_1", "Invoice", "Invoice__c", "dev", 2, tt.out, tt.runErr, 1500*time.Millisecond, baseTime)

			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", r.Error, tt.wantError)
			}
			if r.Output != tt.out.Stdout {
				t.Errorf("Output = %q, want %q", r.Output, tt.out.Stdout)
			}
			if r.DurationMs != 1500 {
				t.Errorf("DurationMs = %d, want 1500", r.DurationMs)
			}
			if !r.CreatedAt.Equal(baseTime) {
				t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, baseTime)
			}
			if got := r.Succeeded(); got != (tt.wantStatus == deploy.StatusSucceeded) {
				t.Errorf("Succeeded() = %v", got)
			}
		})
	}
}
