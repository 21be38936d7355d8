package services

import "fmt"

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}
