// Package conflict реализует детерминированное разрешение конфликтов
// синхронизации. Функции чистые, без I/O: обе стороны, применив их к одним
// и тем же версиям, приходят к одному результату.
package conflict

import "strings"

// Decision — исход слияния двух версий слота
type Decision int

const (
	// KeepLocal — локальная версия побеждает, удаленная уходит в историю
	KeepLocal Decision = iota
	// TakeRemote — удаленная версия побеждает, локальная уходит в историю
	TakeRemote
)

// SlotVersion — версия слота, участвующая в слиянии
type SlotVersion struct {
	EncryptedBlob string
	Timestamp     int64  // epoch millis по часам устройства-автора
	DeviceID      string // uuid устройства-автора
}

// MergeResult — победитель и проигравший слияния слота.
// Проигравшая версия никогда не отбрасывается: вызывающий код
// обязан сохранить Loser в историю.
type MergeResult struct {
	Decision Decision
	Winner   SlotVersion
	Loser    SlotVersion
}

// MergeSlot сливает локальную и удаленную версии слота: побеждает
// более поздний таймстемп, при равенстве — лексикографически больший
// идентификатор устройства.
func MergeSlot(local, remote SlotVersion) MergeResult {
	if localWins(local, remote) {
		return MergeResult{Decision: KeepLocal, Winner: local, Loser: remote}
	}
	return MergeResult{Decision: TakeRemote, Winner: remote, Loser: local}
}

func localWins(local, remote SlotVersion) bool {
	if local.Timestamp != remote.Timestamp {
		return local.Timestamp > remote.Timestamp
	}
	// Тай-брейк по id устройства, чтобы обе стороны выбрали одинаково
	return strings.Compare(local.DeviceID, remote.DeviceID) >= 0
}

// HistoryWanted сообщает, нужно ли принимать входящий элемент истории.
// Дедупликация по хешу содержимого: совпадение хеша — тот же текст.
func HistoryWanted(existingHashes map[string]struct{}, contentHash string) bool {
	_, seen := existingHashes[contentHash]
	return !seen
}

// ResolveTombstone сообщает, должно ли удаление с таймстемпом deleteTS
// погасить элемент с таймстемпом itemTS. Побеждает более позднее событие:
// переписанный после удаления элемент остается жить.
func ResolveTombstone(deleteTS, itemTS int64) bool {
	return deleteTS >= itemTS
}
