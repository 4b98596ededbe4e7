package porcelain

import (
	"cmp"
	"slices"
	"strings"
)

// BranchFormat is the --format argument for `git branch --list`.
const BranchFormat = "%(refname:short)|%(objectname:short)|%(HEAD)|%(upstream:short)|%(upstream:track)"

// ParseBranches parses local branches. The result lists the current branch
// first, then the rest sorted by name.
func ParseBranches(out string) []BranchInfo {
	return parseBranchList(out, true)
}

// ParseRemoteBranches parses `git branch --list --remotes` output.
func ParseRemoteBranches(out string) []BranchInfo {
	return parseBranchList(out, false)
}

func parseBranchList(out string, local bool) []BranchInfo {
	var branches []BranchInfo
	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 5)
		name := strings.TrimSpace(parts[0])
		if name == "" || strings.HasPrefix(name, "(HEAD") {
			continue
		}
		if !local && strings.HasSuffix(name, "/HEAD") {
			continue
		}
		b := BranchInfo{Name: name, IsLocal: local}
		if len(parts) > 1 {
			b.Hash = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			b.IsCurrent = strings.TrimSpace(parts[2]) == "*"
		}
		if len(parts) > 3 {
			b.Upstream = strings.TrimSpace(parts[3])
		}
		if len(parts) > 4 {
			b.Tracking = strings.TrimSpace(parts[4])
		}
		branches = append(branches, b)
	}
	SortBranches(branches)
	return branches
}

// SortBranches orders the current branch first, then by name.
func SortBranches(branches []BranchInfo) {
	slices.SortStableFunc(branches, func(a, b BranchInfo) int {
		if a.IsCurrent != b.IsCurrent {
			if a.IsCurrent {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
