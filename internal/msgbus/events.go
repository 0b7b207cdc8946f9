// SPDX-License-Identifier: MPL-2.0

package msgbus

const (
	// TopicCollectionChanged is published after a collection list was written.
	TopicCollectionChanged = "collection.changed"
	// TopicHashReportProgress is published while hash reports are computed.
	TopicHashReportProgress = "hashreport.progress"
)

// CollectionChange describes what happened to a collection.
type CollectionChange string

const (
	CollectionSaved    CollectionChange = "saved"
	CollectionDeleted  CollectionChange = "deleted"
	CollectionSelected CollectionChange = "selected"
	CollectionImported CollectionChange = "imported"
)

type (
	// CollectionChangedEvent announces a persisted collection change.
	CollectionChangedEvent struct {
		Game       string
		Collection string
		Change     CollectionChange
	}

	// HashReportProgressEvent reports how many mods of a hash report run are done.
	HashReportProgressEvent struct {
		Collection string
		Mod        string
		Done       int
		Total      int
	}
)

// Topic implements Event.
func (CollectionChangedEvent) Topic() string { return TopicCollectionChanged }

// Topic implements Event.
func (HashReportProgressEvent) Topic() string { return TopicHashReportProgress }

// Percent returns the completed share in the range 0-100.
func (e HashReportProgressEvent) Percent() float64 {
	if e.Total <= 0 {
		return 100
	}
	return float64(e.Done) * 100 / float64(e.Total)
}
