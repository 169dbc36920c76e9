package eventbus

// Pipeline queues. Each stage consumes exactly one of these; retry and DLQ
// topics are derived per queue.
var (
	TopicPostCreated       = NewTopic("post_created_queue")
	TopicReview            = NewTopic("review_notifications_queue")
	TopicContentProcessing = NewTopic("content_processing_queue")
	TopicFinalApproval     = NewTopic("final_approval_notifications_queue")
	TopicPostApproval      = NewTopic("post_approval_queue")
	TopicPostRejected      = NewTopic("post_rejected_queue")
)

var AllTopics = []Topic{
	TopicPostCreated,
	TopicReview,
	TopicContentProcessing,
	TopicFinalApproval,
	TopicPostApproval,
	TopicPostRejected,
}
