package domain

import "errors"

var ErrNoCredential = errors.New("no stored credential")
