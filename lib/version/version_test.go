// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit = "abc1234"
	GitDirty = "true"
	if info := Info(); !strings.Contains(info, "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty marker", info)
	}

	GitDirty = "false"
	if info := Info(); strings.Contains(info, "-dirty") {
		t.Errorf("Info() = %q, want no dirty marker", info)
	}
}

func TestPrintNamesBinary(t *testing.T) {
	var buffer bytes.Buffer
	Print(&buffer, "fwconsole")
	output := buffer.String()
	if !strings.HasPrefix(output, "fwconsole "+Short()) {
		t.Errorf("Print output %q does not start with binary and version", output)
	}
	if !strings.Contains(output, "Platform:") {
		t.Errorf("Print output %q lacks platform line", output)
	}
}
