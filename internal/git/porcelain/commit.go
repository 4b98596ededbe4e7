package porcelain

import "strings"

// CommitInfoFormat is the --format argument ParseCommitInfo expects. The body
// may span several lines, so fields are split on NUL only.
const CommitInfoFormat = "%s%x00%b%x00%an%x00%ae%x00%aI%x00%P%x00%D"

func ParseCommitInfo(out string) (CommitInfo, bool) {
	fields := strings.Split(out, "\x00")
	if len(fields) < minLogFields {
		return CommitInfo{}, false
	}
	info := CommitInfo{
		Subject: strings.TrimSpace(fields[0]),
		Body:    strings.TrimRight(fields[1], "\n"),
		Author:  fields[2],
		Email:   fields[3],
		Date:    strings.TrimSpace(fields[4]),
	}
	if len(fields) > 5 {
		info.Parents = strings.Fields(fields[5])
	}
	if len(fields) > 6 {
		info.Decorations = strings.TrimSpace(fields[6])
	}
	return info, true
}
