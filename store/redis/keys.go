package redis

import "strings"

// Redis key naming conventions for docflow data.
// All keys are prefixed with "docflow:" to avoid collisions.

const keyPrefix = "docflow:"

// itemKey returns the key for one stored version:
// docflow:{collection}:item:{id}@{version}
func itemKey(collection, id, version string) string {
	return keyPrefix + collection + ":item:" + member(id, version)
}

// membersKey is the Set tracking every (id, version) member of a
// collection for enumeration.
func membersKey(collection string) string {
	return keyPrefix + collection + ":members"
}

// activeKey is the Set indexing the currently-active members.
func activeKey(collection string) string {
	return keyPrefix + collection + ":active"
}

// member encodes an (id, version) pair as one Set member. Record ids
// never contain '@'; versions are RFC3339 timestamps, which don't
// either, so the first '@' splits unambiguously.
func member(id, version string) string {
	return id + "@" + version
}

// splitMember decodes a Set member back into (id, version).
func splitMember(m string) (id, version string, ok bool) {
	id, version, ok = strings.Cut(m, "@")
	return id, version, ok
}
