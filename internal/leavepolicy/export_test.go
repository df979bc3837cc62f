package leavepolicy

const CacheIfNewerScript = cacheIfNewerScript
