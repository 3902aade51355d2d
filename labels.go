package roadwatch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// VehicleClasses are the COCO dataset class indices treated as vehicles,
// car, motorcycle, bus and truck
var VehicleClasses = []int{2, 3, 5, 7}

// IsVehicleClass reports whether the given COCO class index is a
// vehicle class
func IsVehicleClass(class int) bool {

	for _, c := range VehicleClasses {
		if c == class {
			return true
		}
	}

	return false
}

// LoadLabels reads the labels used to train the detection model from the
// given text file.  It should contain one label per line.
func LoadLabels(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line != "" {
			labels = append(labels, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}
