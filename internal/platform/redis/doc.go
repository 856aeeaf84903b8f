// Package redis implements store.TaskStore on top of Redis.
//
// Each task lives in a hash at "task:<uuid>" whose fields are individually
// JSON-encoded values, with a TTL set at creation. Work queues are plain lists
// named "<task_type>_INPUT": producers LPUSH task ids and workers BRPOP them,
// which gives FIFO order per queue.
package redis
