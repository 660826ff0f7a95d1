// Package viz renders numerical results for the terminal.
//
//   - [ConvergencePlot]: log10 error against refinement level
//   - [PathPlot]: an ODE trajectory with its closed-form reference
//   - [ResultTable]: a styled summary of one run
//
// Styling follows the active [Theme]; see [SetTheme].
package viz
