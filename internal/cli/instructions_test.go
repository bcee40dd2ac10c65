package cli

import (
	"strings"
	"testing"
)

func TestInstructionsCommand_MissingDocument(t *testing.T) {
	setupHub(t, "backend_agent")

	err := instructionsCmd.RunE(instructionsCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "parsing instructions") {
		t.Errorf("error = %v", err)
	}
}

func TestInstructionsCommand_DisplaysTasks(t *testing.T) {
	setupHub(t, "backend_agent")
	initHub(t)
	resetAssignFlags()
	defer resetAssignFlags()

	assignAgent = "backend_agent"
	assignDescription = "Implement retry logic"
	if err := assignCmd.RunE(assignCmd, []string{"TASK-001"}); err != nil {
		t.Fatalf("assigning: %v", err)
	}

	origFilter := instructionsAgent
	defer func() { instructionsAgent = origFilter }()

	instructionsAgent = ""
	if err := instructionsCmd.RunE(instructionsCmd, []string{}); err != nil {
		t.Errorf("instructions failed: %v", err)
	}

	instructionsAgent = "other_agent"
	if err := instructionsCmd.RunE(instructionsCmd, []string{}); err != nil {
		t.Errorf("filtered instructions failed: %v", err)
	}
}
