package porcelain

import "strings"

// LogFormat is the --format argument ParseLog expects: hash, short hash,
// subject, author, author date, decorations and parents separated by NUL.
const LogFormat = "%H%x00%h%x00%s%x00%an%x00%aI%x00%D%x00%P"

const minLogFields = 5

func ParseLog(out string) []CommitEntry {
	var entries []CommitEntry
	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimRight(line, "\r")
		fields := strings.Split(line, "\x00")
		if len(fields) < minLogFields {
			continue
		}
		entry := CommitEntry{
			Hash:      fields[0],
			ShortHash: fields[1],
			Subject:   fields[2],
			Author:    fields[3],
			Date:      fields[4],
		}
		if len(fields) > 5 {
			entry.Decorations = fields[5]
		}
		if len(fields) > 6 {
			entry.Parents = fields[6]
		}
		entries = append(entries, entry)
	}
	return entries
}

// ParentHashes splits the raw parent string.
func (c CommitEntry) ParentHashes() []string {
	return strings.Fields(c.Parents)
}
