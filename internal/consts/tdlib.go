package consts

const (
	ClCached  int32 = 0
	ClMain    int32 = -1
	ClArchive int32 = -2
)

// MinCustomFolderId is the smallest id the server accepts for a user-created folder.
const MinCustomFolderId int32 = 2

// Chat id ranges used by TDLib to encode peer kinds into a single int64.
const (
	ZeroChannelId    int64 = -1000000000000
	ZeroSecretChatId int64 = -2000000000000
)

const (
	SnapshotKindBackup = "backup"
	SnapshotKindAssign = "assign"
)
