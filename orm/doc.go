/*
Package orm provides typed access to protobuf encoded models kept in a
key value store.

A ModelBucket prefixes every key with the bucket name so that many buckets
can share one store. Secondary indexes map an indexed value to the primary
keys of all models that produce it. Sequences generate monotonically
increasing, big endian encoded keys.
*/
package orm
