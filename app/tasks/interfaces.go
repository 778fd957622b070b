package tasks

// TaskSchedulerInterface is the scheduler as seen by main and the HTTP API.
//
//	scheduler := NewScheduler(sourceCache, sourceRepo, nodeRepo, importer, options)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueImport("blog")
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueImport(sourceName string) error
}
