package client

// LocalSlot — локальное состояние слота буфера
type LocalSlot struct {
	SlotNumber int
	Encrypted  string // base64 blob
	UpdatedAt  int64  // epoch millis по часам устройства-автора
	UpdatedBy  string // uuid устройства-автора
}

// LocalHistoryItem — элемент локальной истории.
// DeletedAt не nil для погашенных tombstone-ом элементов.
type LocalHistoryItem struct {
	ID          string
	Encrypted   string
	ContentHash string
	DeviceID    string
	CreatedAt   int64
	DeletedAt   *int64
}

// Виды элементов очереди исходящих мутаций
const (
	QueueKindSlotUpdate    = "slot_update"
	QueueKindHistoryPush   = "history_push"
	QueueKindHistoryDelete = "history_delete"
)

// QueueItem — отложенная мутация в durable-очереди.
// Payload — JSON соответствующего protocol-сообщения: ID элемента
// переживает ретраи, и релей дедуплицирует повторную доставку.
type QueueItem struct {
	ID        string
	Seq       int64
	Kind      string
	Payload   []byte
	CreatedAt int64
	Attempts  int
	Dead      bool
}

// QuarantineItem — элемент, не прошедший проверку целостности.
// Хранится как есть: не применяется и не ретраится вслепую.
type QuarantineItem struct {
	ID        string
	Payload   []byte
	Reason    string
	CreatedAt int64
}

// Ключи таблицы settings
const (
	SettingToken              = "token"
	SettingUserID             = "user_id"
	SettingDeviceID           = "device_id"
	SettingServerURL          = "server_url"
	SettingHistorySyncEnabled = "history_sync_enabled"
)
