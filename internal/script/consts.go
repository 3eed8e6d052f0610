package script

const (
	// CommentPrefix marks a comment line or trailing comment.
	CommentPrefix = "#"

	// NullName refers to the nil address in free commands.
	NullName = "null"

	// HexPrefix introduces a hexadecimal number.
	HexPrefix = "0x"

	// Command keywords.
	CmdArena  = "arena"
	CmdAlloc  = "alloc"
	CmdFree   = "free"
	CmdExpect = "expect"
	CmdDump   = "dump"
	CmdVerify = "verify"
)
