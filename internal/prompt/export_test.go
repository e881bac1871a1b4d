package prompt

var NormalizeError = normalizeError
