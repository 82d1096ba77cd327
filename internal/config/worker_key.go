package config

type WorkerKeyStruct struct {
	PersistUploadEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistUploadEventsQueue: "persist_upload_events_queue",
}
